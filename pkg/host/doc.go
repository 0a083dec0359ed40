/*
Package host models the CAD side of the bridge: an in-memory parametric
design document, the execution context handed to command handlers, and the
single-threaded loop that stands in for the host application's cooperative
main thread.

The model is bookkeeping, not a geometry kernel. Bodies carry measured
metrics (volume, area, face tables, bounding boxes) that feature commands
compute arithmetically for the shapes they create; nothing here evaluates
b-rep topology.

All lengths are stored in centimeters, the host kernel's database unit.
Angles are stored in degrees.

Everything in this package except MainLoop is confined to the loop
goroutine: Context and Design carry no locks by design.
*/
package host
