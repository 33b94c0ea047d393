/*
 * Copyright 2024 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package types defines the core interfaces and value types of the data-rule
// propagation engine: attributes, obligations, activation conditions, data-rule
// containers and flow rules. The workflow-graph contract they operate over is
// graph.Wrapper.
package types

import "fmt"

// Stage is the lifecycle phase of a data item as it crosses a component.
type Stage int

const (
	Imported Stage = iota
	Processing
	Finished
)

// String returns the textual form used by the activation-condition grammar
// and by dumped rule text ("import", "processing", "finish").
func (s Stage) String() string {
	switch s {
	case Imported:
		return "import"
	case Processing:
		return "processing"
	case Finished:
		return "finish"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// ParseStage parses the textual stage tag used in the activation grammar.
func ParseStage(s string) (Stage, error) {
	switch s {
	case "import":
		return Imported, nil
	case "processing":
		return Processing, nil
	case "finish":
		return Finished, nil
	default:
		return 0, fmt.Errorf("unknown stage tag %q", s)
	}
}
