package mcpserver

// WorkspaceGuideURI identifies the workspace usage guide resource.
const WorkspaceGuideURI = "scribe://workspace-guide"

// WorkspaceGuide explains to an agent how saves into the workspace behave.
const WorkspaceGuide = `# Scribe Workspace Guide

Scribe persists text produced by an agent into a single workspace directory.

## Saving

Call ` + "`" + `file_saver` + "`" + ` with:

- ` + "`" + `file_path` + "`" + ` (required): path relative to the workspace root, e.g. ` + "`" + `reports/summary.md` + "`" + `.
  One leading ` + "`" + `/` + "`" + ` is ignored, so ` + "`" + `/reports/summary.md` + "`" + ` lands in the same place.
- ` + "`" + `content` + "`" + ` (required): the text to write. An empty string is allowed.
- ` + "`" + `mode` + "`" + ` (optional): ` + "`" + `overwrite` + "`" + ` (default, alias ` + "`" + `w` + "`" + `) replaces the file;
  ` + "`" + `append` + "`" + ` (alias ` + "`" + `a` + "`" + `) adds to its end. Both create the file when missing.

Missing parent directories are created. On success the tool answers
` + "`" + `Content saved to workspace: <file_path>` + "`" + `; on failure it returns an error result whose
text starts with ` + "`" + `Error saving file:` + "`" + `.

## Paths

- Paths must stay inside the workspace. ` + "`" + `..` + "`" + ` segments that climb above the root are rejected.
- The workspace root itself cannot be written; name a file.
- Use forward slashes.

## Reading back

- ` + "`" + `list_workspace` + "`" + ` lists one directory level (directories first).
- ` + "`" + `read_file` + "`" + ` returns a file's text.
- ` + "`" + `search_workspace` + "`" + ` finds files by content or path.
- ` + "`" + `recent_saves` + "`" + ` shows the newest save attempts, successful or not.
`
