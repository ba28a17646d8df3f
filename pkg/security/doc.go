/*
Package security groups the protections around the relay listener.

# TLS

Package tls loads the listener's key pair and swaps it in when the files
on disk change, so certificates can be rotated without a restart:

	reloader := tls.NewCertificateReloader(certFile, keyFile, time.Minute)
	if err := reloader.Start(ctx); err != nil {
		return err
	}
	server.TLSConfig = reloader.ServerConfig()

# Secrets

Package secrets resolves ${secret:name} references in configuration
values from a secrets directory or prefixed environment variables:

	manager := secrets.NewManager(secrets.NewEnvProvider("RELAY_SECRET_"))
	password, err := manager.ResolveReferences(ctx, cfg.Upstream.Password)

# API keys

Package auth guards the relay route with static API keys presented in
request headers:

	handler = auth.Middleware(auth.NewAPIKeyValidator(keys))(handler)
*/
package security
