/*
Package sysmetrics collects process-local resource metrics: memory, CPU,
disk usage, and uptime.

All readings are approximations by design:

  - Memory percent is the process RSS divided by a configured total system
    memory, not a reading of real hardware capacity.
  - CPU percent compares the process CPU time delta against a 100ms
    wall-clock window and is capped at 100. Sample blocks for the window
    and no longer.
  - Disk percent is the used fraction of one configured mount point.

A failed reading is logged and reported as zero rather than failing the
sample; health aggregation must keep working with partial data.
*/
package sysmetrics
