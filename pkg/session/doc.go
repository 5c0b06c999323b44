/*
Package session serializes concurrent operations on the same wizard instance.

A submission reads the stored state, merges the accepted input and writes it
back. Two submissions for the same (session, wizard) pair running at once would
lose one of the merges, so stitch.Engine runs them under a per-instance lock:
a local mutex always, plus a distributed lock when the state is shared by
several replicas.
*/
package session
