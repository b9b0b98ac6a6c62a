// Command memctl replays allocation traces against the memkit allocators.
package main

func main() {
	execute()
}
