package main

import (
	"bufio"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"movie-tracker/config"
	dbPkg "movie-tracker/pkg/db"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// tables 子表在前，保证外键约束下可以按顺序删除
var tables = []string{
	"comment",
	"user_movie_rating",
	"recently_viewed_item",
	"favorite_item",
	"friendship",
	"friend_request",
	"movie",
	"user",
}

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "配置文件路径")
	yes := flag.Bool("yes", false, "跳过确认提示")
	flag.Parse()

	cfg := config.LoadConfigFrom(*configPath)
	driver := sqlDriverName(cfg.Database.Driver)

	dsn, err := dbPkg.DSN(cfg.Database)
	if err != nil {
		log.Fatalf("Invalid database config: %v", err)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Database connection test failed: %v", err)
	}

	fmt.Println("Database connected successfully")
	fmt.Printf("Driver: %s, Database: %s\n", driver, cfg.Database.Database)

	if !*yes {
		fmt.Printf("\nWARNING: This operation will CLEAR ALL DATA in tables %v!\n", tables)
		fmt.Print("Type 'YES' to confirm: ")
		confirm, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.TrimSpace(confirm) != "YES" {
			fmt.Println("Operation cancelled")
			return
		}
	}

	if failed := resetTables(db, driver, os.Stdout); failed > 0 {
		fmt.Printf("\nDatabase reset finished with %d failed statement(s)\n", failed)
		os.Exit(1)
	}

	fmt.Println("\nDatabase reset completed!")
	fmt.Println("All table data cleared, table structure preserved")
}

// sqlDriverName 配置中的驱动名转换为 database/sql 注册名
func sqlDriverName(driver string) string {
	switch driver {
	case "postgres":
		return "postgres"
	case "sqlite":
		return "sqlite3"
	default:
		return "mysql"
	}
}

func quote(driver, table string) string {
	if driver == "mysql" {
		return "`" + table + "`"
	}
	return `"` + table + `"`
}

// clearStatements 清空单张表并重置自增ID的语句
// sqlite 只有存在 sqlite_sequence 表时才需要重置序号
func clearStatements(driver, table string, hasSequence bool) []string {
	name := quote(driver, table)
	switch driver {
	case "postgres":
		return []string{fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", name)}
	case "sqlite3":
		stmts := []string{fmt.Sprintf("DELETE FROM %s", name)}
		if hasSequence {
			stmts = append(stmts, fmt.Sprintf("DELETE FROM sqlite_sequence WHERE name = '%s'", table))
		}
		return stmts
	default:
		return []string{
			fmt.Sprintf("DELETE FROM %s", name),
			fmt.Sprintf("ALTER TABLE %s AUTO_INCREMENT = 1", name),
		}
	}
}

// resetTables 依次清空所有表，返回失败的语句数
func resetTables(db *sql.DB, driver string, out io.Writer) int {
	hasSequence := false
	switch driver {
	case "mysql":
		_, _ = db.Exec("SET FOREIGN_KEY_CHECKS=0")
		defer func() { _, _ = db.Exec("SET FOREIGN_KEY_CHECKS=1") }()
	case "sqlite3":
		var n int
		err := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'sqlite_sequence'").Scan(&n)
		hasSequence = err == nil && n > 0
	}

	failed := 0
	for _, table := range tables {
		fmt.Fprintf(out, "Clearing table %s... ", table)
		ok := true
		for _, stmt := range clearStatements(driver, table, hasSequence) {
			if _, err := db.Exec(stmt); err != nil {
				fmt.Fprintf(out, "Failed: %v\n", err)
				failed++
				ok = false
				break
			}
		}
		if ok {
			fmt.Fprintln(out, "Success")
		}
	}
	return failed
}
