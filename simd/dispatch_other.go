//go:build !amd64 && !arm64

package simd

var (
	hasAVX2   bool
	hasAVX512 bool
	hasFMA    bool
)

func init() {
	// Other architectures fall back to scalar mode.
	setScalarMode()
}
