//go:build !unix

package bcontent

import "os"

const openFlags = os.O_RDONLY
