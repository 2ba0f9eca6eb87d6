/*
Package iterctx provides the iteration context: the dotted path that
identifies a node of the deployment tree (unit, frame, application, step)
and keys the status trackers.

The canonical format is a dot-separated sequence of segments, e.g.
`sys1-c1-r1.sub1.weu.frame-a.app-1`. A context is never mutated once built;
descending one level produces a new context so concurrently running siblings
never observe each other's path.
*/
package iterctx
