// package shaders embeds the WGSL module tree. The composer walks this
// filesystem to resolve #import directives into the three top-level
// programs: path_trace, blit and post_process.
package shaders

import "embed"

//go:embed wgsl
var FS embed.FS

// Root is the shader root directory inside FS.
const Root = "wgsl"
