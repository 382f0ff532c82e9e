// Public domain.

package main

import "github.com/proxcent/sedmc/internal/sedprog"

func main() {
	sedprog.Main()
}
