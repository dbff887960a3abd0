package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("WIMS_TEST_MODE") == "" {
			_ = os.Setenv("WIMS_TEST_MODE", "1")
		}
	})
}
