package chat

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// The client renders avatar_state verbatim, so only these nine values are
// allowed through.
var validAvatarStates = map[string]struct{}{
	"neutral":            {},
	"happy":              {},
	"sad":                {},
	"surprised":          {},
	"wearing_sunglasses": {},
	"wearing_scarf":      {},
	"holding_umbrella":   {},
	"shivering":          {},
	"sweating":           {},
}

// Dark navy shades wash out the frontend's dark UI and are banned outright.
var excludedHexColors = map[string]struct{}{
	"#000080": {},
	"#00008B": {},
	"#191970": {},
	"#00004F": {},
}

const fallbackHexColor = "#FFC857"

// parseReply decodes the model's raw strict-JSON output. A reply that cannot
// be decoded is fatal for the turn; a decodable reply with an out-of-contract
// avatar or color is coerced to safe values instead.
func parseReply(raw string) (Reply, error) {
	sanitized := strings.TrimSpace(raw)
	sanitized = strings.TrimPrefix(sanitized, "```json")
	sanitized = strings.TrimSuffix(sanitized, "```")
	sanitized = strings.Trim(sanitized, "`")
	sanitized = strings.TrimSpace(strings.TrimPrefix(sanitized, "json"))

	var reply Reply
	if err := json.Unmarshal([]byte(sanitized), &reply); err != nil {
		return Reply{}, err
	}
	if strings.TrimSpace(reply.EnglishText) == "" {
		return Reply{}, errors.New("english_text missing")
	}
	if strings.TrimSpace(reply.Summary) == "" {
		return Reply{}, errors.New("summary missing")
	}

	reply.AvatarState = sanitizeAvatarState(reply.AvatarState)
	reply.HexColor = sanitizeHexColor(reply.HexColor)
	return reply, nil
}

func sanitizeAvatarState(state string) string {
	if _, ok := validAvatarStates[strings.TrimSpace(state)]; ok {
		return strings.TrimSpace(state)
	}
	return "neutral"
}

func sanitizeHexColor(hex string) string {
	hex = strings.ToUpper(strings.TrimSpace(hex))
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	if len(hex) != 7 {
		return fallbackHexColor
	}
	if _, banned := excludedHexColors[hex]; banned {
		return fallbackHexColor
	}

	r, errR := strconv.ParseUint(hex[1:3], 16, 8)
	g, errG := strconv.ParseUint(hex[3:5], 16, 8)
	b, errB := strconv.ParseUint(hex[5:7], 16, 8)
	if errR != nil || errG != nil || errB != nil {
		return fallbackHexColor
	}
	if isDarkBlueDominant(uint8(r), uint8(g), uint8(b)) {
		return fallbackHexColor
	}
	return hex
}

// isDarkBlueDominant flags colors where blue clearly leads the other
// channels and the overall color is dark.
func isDarkBlueDominant(r, g, b uint8) bool {
	blueDominant := int(b) > int(r)+32 && int(b) > int(g)+32
	dark := int(r)+int(g)+int(b) < 384
	return blueDominant && dark
}
