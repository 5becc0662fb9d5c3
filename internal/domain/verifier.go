package domain

type Verifier interface {
	Verify(path string) error
}
