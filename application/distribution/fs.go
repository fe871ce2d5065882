package distribution

import (
	"io/fs"
	"os"
)

// dirFS is swapped in tests
var dirFS = func(root string) fs.FS {
	return os.DirFS(root)
}
