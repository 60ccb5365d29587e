package main

import "github.com/tech-arch1tect/iam/app"

func main() {
	app.New(nil).Run()
}
