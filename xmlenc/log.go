// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package xmlenc

import "github.com/technoweenie/grohl"

// eventLog is the driver's structured event logger. grohl is the teacher's
// own low-traffic structured-event dependency (not a general-purpose
// leveled logger), so a pipeline-built/key-resolved/splice-performed/
// error-raised event is exactly the shape it was built for. It defaults to
// grohl's package-level statter, which is a silent no-op until a caller
// installs a grohl.Sink via SetEventSink.
var eventLog = grohl.NewContext(grohl.Data{"component": "xmlenc"})

// SetEventSink installs where driver lifecycle events are reported. Passing
// nil restores grohl's default (silent) behavior.
func SetEventSink(sink grohl.Sink) {
	if sink == nil {
		grohl.SetSink(new(grohl.NilSink))
		return
	}
	grohl.SetSink(sink)
}

func logPipelineBuilt(node string, encrypt bool, transforms int) {
	eventLog.Log(grohl.Data{"event": "pipeline_built", "node": node, "encrypt": encrypt, "transforms": transforms})
}

func logKeyResolved(origin KeyOrigin, keyType string) {
	eventLog.Log(grohl.Data{"event": "key_resolved", "origin": int(origin), "key_type": keyType})
}

func logSplicePerformed(node, typ string) {
	eventLog.Log(grohl.Data{"event": "splice_performed", "node": node, "type": typ})
}

func logError(err *Error) {
	eventLog.Log(grohl.Data{"event": "error_raised", "kind": string(err.Kind), "node": err.Node})
}
