package main

import (
	"net/url"

	"github.com/skip2/go-qrcode"
)

const inviteQRSize = 256

// InviteURL is the client link that joins a lobby
func InviteURL(publicURL, lobby string) string {
	return publicURL + "/?lobby=" + url.QueryEscape(CleanLobby(lobby))
}

// InviteQR renders the lobby invite link as a PNG QR code
func InviteQR(publicURL, lobby string) ([]byte, error) {
	return qrcode.Encode(InviteURL(publicURL, lobby), qrcode.Medium, inviteQRSize)
}
