/*
Copyright (c) shv-go authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package main implements shvdump, a diagnostic CLI that connects to an SHV
// broker, performs the login handshake and prints every frame it sees
// afterwards in a table: kind, request id, shv path, method and a short
// rendering of the payload.
package main

import (
	"fmt"
	"os"

	"github.com/silicon-heaven/shv-go/cmd/shvdump/cmd"
)

func main() {
	if err := cmd.RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
