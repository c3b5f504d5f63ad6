package whatsapp

import "net/url"

// VerifyChallenge implements the Meta webhook verification handshake.
// The platform calls GET /webhook with hub.mode=subscribe, hub.verify_token
// and hub.challenge; on a token match the challenge must be echoed back.
func VerifyChallenge(query url.Values, verifyToken string) (string, bool) {
	mode := query.Get("hub.mode")
	token := query.Get("hub.verify_token")
	challenge := query.Get("hub.challenge")

	if mode != "subscribe" || verifyToken == "" || token != verifyToken {
		return "", false
	}
	return challenge, true
}
