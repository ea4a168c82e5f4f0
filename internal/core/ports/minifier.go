package ports

// Minifier shrinks text assets. All methods are pure byte transforms.
type Minifier interface {
	CSS(src []byte) ([]byte, error)
	JS(src []byte) ([]byte, error)
	HTML(src []byte) ([]byte, error)
}
