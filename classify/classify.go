// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package classify implements C6: the mapping from the internal status
// codes produced by the parser/validator/optimizer/scheduler onto the
// small client-facing error enumeration described in spec section 4.6.
package classify

import "github.com/jyz0309/nebula/status"

// ClientError is the error code surfaced to the client in the response,
// per spec section 4.6.
type ClientError int

const (
	// SUCCEEDED means the query completed without error.
	SUCCEEDED ClientError = iota
	// ESyntaxError means the query text could not be parsed.
	ESyntaxError
	// EStatementEmpty means the query text contained no statement.
	EStatementEmpty
	// ESemanticError means the query failed semantic validation.
	ESemanticError
	// EBadPermission means the session lacks permission to run the query.
	EBadPermission
	// EExecutionError is the catch-all for every other non-OK internal
	// status, including LeaderChanged (which additionally increments a
	// dedicated counter - see IsLeaderChanged).
	EExecutionError
)

var names = map[ClientError]string{
	SUCCEEDED:       "SUCCEEDED",
	ESyntaxError:    "E_SYNTAX_ERROR",
	EStatementEmpty: "E_STATEMENT_EMPTY",
	ESemanticError:  "E_SEMANTIC_ERROR",
	EBadPermission:  "E_BAD_PERMISSION",
	EExecutionError: "E_EXECUTION_ERROR",
}

// String implements fmt.Stringer.
func (c ClientError) String() string {
	if name, ok := names[c]; ok {
		return name
	}
	return "E_EXECUTION_ERROR"
}

// Of implements the table in spec section 4.6. It is a total function: every
// status.Code maps to exactly one ClientError (P7), with every code not
// explicitly called out falling through to EExecutionError.
func Of(code status.Code) ClientError {
	switch code {
	case status.OK:
		return SUCCEEDED
	case status.SyntaxError:
		return ESyntaxError
	case status.StatementEmpty:
		return EStatementEmpty
	case status.SemanticError:
		return ESemanticError
	case status.PermissionError:
		return EBadPermission
	default:
		// LeaderChanged and every not-found/partial-success/internal
		// code all collapse here.
		return EExecutionError
	}
}

// IsLeaderChanged reports whether code is the one internal status that, in
// addition to mapping to EExecutionError, requires bumping the
// num_query_errors_leader_changes counter (spec section 4.6/6).
func IsLeaderChanged(code status.Code) bool {
	return code == status.LeaderChanged
}
