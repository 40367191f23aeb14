package main

import "github.com/ValentinKolb/nsmutex/cmd"

func main() {
	cmd.Execute()
}
