// main.go
package main

import "jsondropper/cmd"

func main() {
	cmd.Execute()
}
