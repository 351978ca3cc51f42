package catalog

import "strings"

// PlaceholderImage 无图片时使用的占位图
const PlaceholderImage = "/placeholder-image.jpg"

// ImageSize 图片尺寸标识
type ImageSize string

const (
	SizeW45      ImageSize = "w45"
	SizeW92      ImageSize = "w92"
	SizeW154     ImageSize = "w154"
	SizeW185     ImageSize = "w185"
	SizeW300     ImageSize = "w300"
	SizeW342     ImageSize = "w342"
	SizeW500     ImageSize = "w500"
	SizeW780     ImageSize = "w780"
	SizeW1280    ImageSize = "w1280"
	SizeH632     ImageSize = "h632"
	SizeOriginal ImageSize = "original"
)

var validSizes = map[ImageSize]struct{}{
	SizeW45: {}, SizeW92: {}, SizeW154: {}, SizeW185: {}, SizeW300: {}, SizeW342: {},
	SizeW500: {}, SizeW780: {}, SizeW1280: {}, SizeH632: {}, SizeOriginal: {},
}

// SizeSet 某类图片的小/中/大/原图尺寸
type SizeSet struct {
	Small    ImageSize `json:"small"`
	Medium   ImageSize `json:"medium"`
	Large    ImageSize `json:"large"`
	Original ImageSize `json:"original"`
}

// 各类图片的常用尺寸
var (
	PosterSizes   = SizeSet{Small: SizeW185, Medium: SizeW342, Large: SizeW500, Original: SizeOriginal}
	BackdropSizes = SizeSet{Small: SizeW300, Medium: SizeW780, Large: SizeW1280, Original: SizeOriginal}
	ProfileSizes  = SizeSet{Small: SizeW45, Medium: SizeW185, Large: SizeH632, Original: SizeOriginal}
)

// Valid 是否为支持的尺寸
func (s ImageSize) Valid() bool {
	_, ok := validSizes[s]
	return ok
}

// ImageURL 拼接图片地址；path 为空返回占位图，未知尺寸按原图处理
func (c *Client) ImageURL(path *string, size ImageSize) string {
	return BuildImageURL(c.imageBaseURL, path, size)
}

// BuildImageURL 不依赖 Client 的图片地址拼接
func BuildImageURL(base string, path *string, size ImageSize) string {
	if path == nil || *path == "" {
		return PlaceholderImage
	}
	if !size.Valid() {
		size = SizeOriginal
	}
	p := *path
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(base, "/") + "/" + string(size) + p
}
