// Package monitor reads the hardware monitoring snapshot the MSI Afterburner
// server publishes in the MAHMSharedMemory segment.
//
// A Monitor is a small state machine. Every Refresh reopens the segment,
// validates the header and decodes all entries into owned values that
// replace the previous snapshot wholesale. Failures leave the previous
// snapshot in place, except the dead sentinel, which the source writes when
// it stops publishing and which clears it.
//
// Basic usage:
//
//	m, err := monitor.New(monitor.Options{})
//	if err != nil {
//		return err
//	}
//	defer m.Close()
//
//	if err := m.Refresh(); err != nil {
//		return err
//	}
//	for _, e := range m.Entries() {
//		fmt.Println(e)
//	}
//
// The library never polls: callers decide when to call Refresh. A Monitor is
// not safe for concurrent use.
package monitor
