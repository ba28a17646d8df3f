/*
Package tls serves the relay's HTTPS listener from a key pair that can be
rotated on disk without a restart.

A CertificateReloader loads the pair once at startup, failing on an
unreadable, mismatched, expired or not-yet-valid certificate, and then
polls the files' modification times. A changed pair that fails to load is
logged and the previous certificate stays in use.

	reloader := tls.NewCertificateReloader(certFile, keyFile, time.Minute)
	if err := reloader.Start(ctx); err != nil {
		return err
	}
	srv.TLSConfig = reloader.ServerConfig()

Certificates expiring within ExpiryWarningDays are logged at WARN on every
load.
*/
package tls
