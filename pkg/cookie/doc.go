// Package cookie reads and writes HTTP cookies with shared attributes.
//
// Three flavours are supported:
//
//   - plain: [Manager.Get], [Manager.Set], [Manager.Delete]
//   - signed (HMAC-SHA256 over name and value): [Manager.GetSigned], [Manager.SetSigned]
//   - encrypted JSON (AES-256-GCM, cookie name as additional data):
//     [Manager.GetJSON], [Manager.SetJSON], [Manager.PopJSON]
//
// The session manager keeps the session token in a signed cookie; the login
// handler keeps the pending OAuth1 request token in an encrypted one.
//
//	m, err := cookie.New(os.Getenv("COOKIE_SECRET"), cookie.WithSecure(true))
//	if err != nil {
//		return err
//	}
//	err = m.SetJSON(w, "__oauth", pending, 600)
package cookie
