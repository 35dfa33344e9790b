package seeder

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/frostyapps/cortex-demos/internal/tarot"
)

// CardImage is one card picture found while crawling.
type CardImage struct {
	File string // object name in the card bucket
	URL  string // full size image
}

// ImageProcessor recognises Rider-Waite card pictures among page images and
// resolves thumbnails to their full size originals.
type ImageProcessor struct {
	cardFile  *regexp.Regexp
	thumbnail *regexp.Regexp
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{
		// RWS_Tarot_01_Magician.jpg for the major arcana, Cups01.jpg for the minor
		cardFile:  regexp.MustCompile(`^(RWS_Tarot_\d{2}_[A-Za-z_]+|(Cups|Pents|Swords|Wands)\d{2})\.jpg$`),
		thumbnail: regexp.MustCompile(`^(.*)/thumb(/.+\.jpg)/[^/]+$`),
	}
}

// CardFromSource inspects an absolute image URL and reports whether it
// shows a tarot card.
func (p *ImageProcessor) CardFromSource(src string) (CardImage, bool) {
	if strings.HasPrefix(src, "//") {
		src = "https:" + src
	}
	u, err := url.Parse(src)
	if err != nil || u.Host == "" {
		return CardImage{}, false
	}

	if m := p.thumbnail.FindStringSubmatch(u.Path); m != nil {
		u.Path = m[1] + m[2]
		u.RawPath = ""
	}
	u.RawQuery = ""
	u.Fragment = ""

	file := path.Base(u.Path)
	if !p.cardFile.MatchString(file) {
		return CardImage{}, false
	}
	// the deck only keeps files the reader can name
	if _, err := tarot.FriendlyName(file); err != nil {
		return CardImage{}, false
	}

	return CardImage{File: file, URL: u.String()}, true
}
