// Package auth protects the relay route with static API keys.
//
// Callers present a key as "Authorization: Bearer <key>" or in the
// X-API-Key header. The query string is never consulted: every query
// parameter is part of the relayed document.
//
//	validator := auth.NewAPIKeyValidator([]auth.APIKey{{Name: "ops", Key: key, Enabled: true}})
//	handler = auth.Middleware(validator)(handler)
//
// The authenticated key's name is available from CallerName.
package auth
