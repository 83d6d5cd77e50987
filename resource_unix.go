//go:build unix

package bcontent

import (
	"os"
	"syscall"
)

// openFlags never block on special files such as fifos, the stat check rejects them.
const openFlags = os.O_RDONLY | syscall.O_NONBLOCK
