package tarot

import (
	"encoding/base64"
	"fmt"
	"path"
	"strconv"
	"strings"
)

var rankNames = map[int]string{
	1: "Ace", 2: "Two", 3: "Three", 4: "Four", 5: "Five",
	6: "Six", 7: "Seven", 8: "Eight", 9: "Nine", 10: "Ten",
	11: "Page", 12: "Knight", 13: "Queen", 14: "King",
}

// FriendlyName turns a card image file name into the card's display name.
//
// Major arcana files are named like "RWS_Tarot_00_Fool.jpg" and yield the last
// underscore separated segment ("Fool"). Minor arcana files are named
// "<Suit><NN>.jpg", for example "Cups03.jpg" -> "Three of Cups". The "Pents"
// suit is spelled out as "Pentacles".
func FriendlyName(fileName string) (string, error) {
	base := path.Base(fileName)
	stem := strings.SplitN(base, ".", 2)[0]

	if strings.HasPrefix(base, "RWS") {
		parts := strings.Split(stem, "_")
		return parts[len(parts)-1], nil
	}

	if len(stem) < 3 {
		return "", fmt.Errorf("card file name %q is too short", fileName)
	}

	suit := stem[:len(stem)-2]
	n, err := strconv.Atoi(stem[len(stem)-2:])
	if err != nil {
		return "", fmt.Errorf("card file name %q has no rank: %w", fileName, err)
	}
	rank, ok := rankNames[n]
	if !ok {
		return "", fmt.Errorf("card file name %q has unknown rank %d", fileName, n)
	}
	if suit == "Pents" {
		suit = "Pentacles"
	}

	return fmt.Sprintf("%s of %s", rank, suit), nil
}

// ImageDataURI embeds image bytes in a data URI, using the lower-cased file
// extension as the image subtype.
func ImageDataURI(fileName string, content []byte) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(fileName), "."))
	return fmt.Sprintf("data:image/%s;base64,%s", ext, base64.StdEncoding.EncodeToString(content))
}
