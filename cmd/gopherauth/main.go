package main

import "github.com/talx-hub/gopher-auth/internal/service"

func main() {
	service.RunServer()
}
