package main

import "github.com/YevheniiGera/dialogflow-cx-mcp/cmd"

func main() {
	cmd.Execute()
}
