package bytecode

import "fmt"

// ptrKey renders a pointer's identity as a constant-pool dedup key.
func ptrKey(p any) string {
	return fmt.Sprintf("%p", p)
}
