package api

// Default server configuration.
const defaultMaxPayloadBytes = 1 << 20

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxPayloadBytes caps the accepted size of a posted scan payload.
func WithMaxPayloadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxPayloadBytes = n
		}
	}
}
