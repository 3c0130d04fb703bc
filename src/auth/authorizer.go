package auth

// RoomAuthorizer decides whether a user may join a room. The durable store
// knows conversation participants; the relay does not, so deployments that
// want server-side join checks inject an implementation backed by it.
type RoomAuthorizer interface {
	Authorized(userID, roomID string) (bool, error)
}

// AuthorizerFunc adapts a function to the RoomAuthorizer interface.
type AuthorizerFunc func(userID, roomID string) (bool, error)

// Authorized calls f.
func (f AuthorizerFunc) Authorized(userID, roomID string) (bool, error) {
	return f(userID, roomID)
}

// AllowAll admits every join. Room ids are unguessable conversation ids
// handed out only through authenticated API responses, so possession of
// the id is treated as proof of participation.
func AllowAll() RoomAuthorizer {
	return AuthorizerFunc(func(string, string) (bool, error) {
		return true, nil
	})
}
