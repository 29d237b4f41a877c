// Command minifeign serves the echo service, sends requests to it and shows
// what the request body encoder does to a protobuf payload.
//
//	minifeign serve --addr :8080
//	minifeign send --target 127.0.0.1:8080 --msg "你好"
//	minifeign inspect --msg "你好"
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
