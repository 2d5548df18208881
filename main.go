// The main package for the menu-catalog executable.
package main

import "github.com/JakeFAU/menu-catalog/cmd"

func main() {
	cmd.Execute()
}
