// internal/handlers/ws_codes.go
package handlers

// Application close codes for the lobby socket.
const (
	BadSubprotocolError   = 3000 // Client connected with an unsupported subprotocol.
	InvalidAuthTokenError = 3001 // A token was supplied but did not verify.
	InvalidLobbyIDError   = 3003 // Target lobby in the URL does not exist or is malformed.
)
