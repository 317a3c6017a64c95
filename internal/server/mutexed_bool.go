/*
 * Mutexed bool - a boolean shared between goroutines.
 *
 * Copyright 2026 Marco Confalonieri.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package server

import "sync"

// mutexedBool is a mutex-protected boolean value.
type mutexedBool struct {
	m sync.RWMutex
	v bool
}

// Set sets the value for this instance.
func (b *mutexedBool) Set(v bool) {
	b.m.Lock()
	defer b.m.Unlock()
	b.v = v
}

// Get gets the value from this instance.
func (b *mutexedBool) Get() bool {
	b.m.RLock()
	defer b.m.RUnlock()
	return b.v
}
