// Package oauth1 is the client side of a three-legged OAuth1 handshake with a
// PassaporteWeb identity provider.
//
// [Client] is the interface the auth handlers depend on; [Passaporte]
// implements it on top of [github.com/dghubble/oauth1], which does the
// request signing.
//
//	p, err := oauth1.NewPassaporte(cfg)
//	if err != nil {
//		return err
//	}
//
//	// login: send the user to the consent page, remember the request token
//	auth, err := p.Authorize(ctx, "https://app.example.com/sso/authorized")
//
//	// callback: trade the verifier for an access token
//	token, err := p.Authorized(ctx, r, auth.RequestToken)
//
//	// signed API call
//	resp, err := p.Post(ctx, cfg.FetchUserDataURL(), *token)
//	profile, err := oauth1.DecodeProfile(resp)
//
// A callback without a usable verifier yields an error wrapping [ErrDenied].
package oauth1
