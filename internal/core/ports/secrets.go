package ports

// SaltProvider supplies the process-wide secret salt used as key material for
// pseudonymous identifier generation. Implementations must fail, not degrade,
// when the salt is unset or left at its placeholder default.
type SaltProvider interface {
	// SecretSalt returns the configured salt. Returns an AppError with code
	// config_error when the salt is missing or still the default value.
	SecretSalt() (string, error)
}
