// Command bcontent runs a content server configured from the environment, see package bcapp for
// the variables it reads.
package main

import "github.com/advdv/bcontent/bcapp"

func main() {
	bcapp.NewApp[bcapp.BaseEnvironment](nil).Run()
}
