// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dispatch

import "errors"

var (
	// ErrAggregatorRequired is returned when a session is created without an aggregator.
	ErrAggregatorRequired = errors.New("aggregator required")

	// ErrUnknownScope is returned for a scope the session does not manage.
	ErrUnknownScope = errors.New("unknown scope")

	// ErrNoSink is returned when a scope receives a query before a sink is attached.
	ErrNoSink = errors.New("no sink attached to scope")

	// ErrUnknownSection is returned when a section index maps to no mode.
	ErrUnknownSection = errors.New("unknown section")

	// ErrSessionClosed is returned after Close.
	ErrSessionClosed = errors.New("session closed")
)
