package api

import "fmt"

// JoinURL builds the deep link for joining the bot's game instance.
// Touch devices can't open the native URI scheme, so they get the web
// launcher instead. Pure string transform, no side effects.
func JoinURL(placeID, jobID string, touch bool) string {
	if touch {
		return fmt.Sprintf("https://www.roblox.com/games/start?placeId=%s&launchData=%s", placeID, jobID)
	}
	return fmt.Sprintf("roblox://experiences/start?placeId=%s&gameInstanceId=%s", placeID, jobID)
}
