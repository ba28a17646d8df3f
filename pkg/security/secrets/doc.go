/*
Package secrets resolves ${secret:name} references in configuration values.

Values such as upstream.password may embed references instead of the
credential itself:

	upstream:
	  username: root
	  password: ${secret:camera-password}

A Manager tries its providers in order. FileProvider reads one file per
secret from a directory, Kubernetes style, and refuses files readable by
group or others. EnvProvider maps "camera-password" to
RELAY_SECRET_CAMERA_PASSWORD.

	manager := secrets.NewManager(fileProvider, secrets.NewEnvProvider("RELAY_SECRET_"))
	password, err := manager.ResolveReferences(ctx, cfg.Upstream.Password)

Secret values never appear in logs; names are shortened with
redactSecretName.
*/
package secrets
