// Command scribbly draws on the webcam feed with an index finger.
package main

import "runtime"

func init() {
	// HighGUI and the system tray must run on the main thread.
	runtime.LockOSThread()
}

func main() {
	Execute()
}
