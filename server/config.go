package server

// Config is the chain server configuration. Fields are loaded from the
// environment first; command line flags override them.
type Config struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string `env:"SECLIST_LISTEN_ADDR" envDefault:":8080"`

	// Digest names the digest algorithm ("sha256", "sha384", "sha512").
	Digest string `env:"SECLIST_DIGEST" envDefault:"sha256"`

	// Debug enables debug logging.
	Debug bool `env:"SECLIST_DEBUG"`
}
