// Package deadline builds Deadline job and plugin descriptor files and hands
// them to deadlinecommand. It knows nothing about Houdini; callers fill in
// JobInfo and PluginInfo from the render node.
package deadline
