/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/shuyan0723/study--student-mangement/cmd"

func main() {
	cmd.Execute()
}
