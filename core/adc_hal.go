package core

// ADCDriver is the abstract converter interface the Sampling Engine uses.
//
// A burst converts every configured channel once, in configuration order,
// and writes the results to the next free slots of the armed buffer. When
// the buffer is full the driver disarms itself and calls the completion
// handler at interrupt priority. Bursts requested while disarmed are dropped.
type ADCDriver interface {
	// Configure enables the channels in set for scanning.
	Configure(set *ChannelSet) error

	// Arm hands buf to the converter and restarts filling from offset 0.
	Arm(buf []Sample) error

	// SampleTask returns the task endpoint that starts one burst.
	SampleTask() TaskID

	// Sample starts one burst from software.
	Sample()

	// SetCompletionHandler registers the buffer-full callback.
	SetCompletionHandler(fn func(buf []Sample))
}
