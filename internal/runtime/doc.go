/*
Package runtime implements the table engine.

The Engine owns the table state and the source records. Its operations (Sort,
Filter, Search, Slice) merge partial criteria into the state, broadcast the
change, re-anchor on the first page when relevant and trigger an execution.
Executions are delegated to an Executor: the local one runs the pipeline on a
timer, others (see package remote) forward the state to a query function.

Within one execution the observable order is always:

	EXEC_CHANGED(true) -> SUMMARY_CHANGED, DISPLAY_CHANGED | EXEC_ERROR -> EXEC_CHANGED(false)

Overlapping executions are neither cancelled nor sequenced: the last to settle wins.
*/
package runtime
