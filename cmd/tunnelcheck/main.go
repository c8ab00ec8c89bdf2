// Package main provides the entry point for the tunnelcheck CLI.
//
// tunnelcheck diagnoses and repairs the configuration of a local Expo /
// React Native development server so it can be reached from other machines
// and browser origins (tunnels, LAN devices, web previews).
//
// Usage:
//
//	tunnelcheck diagnose
//	tunnelcheck fix
//
// See --help for all available options.
package main

func main() {
	Execute()
}
