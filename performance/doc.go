// This file is part of SparkBench.
//
// SparkBench is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SparkBench is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with SparkBench.  If not, see <https://www.gnu.org/licenses/>.

// Package performance contains helper functions relating to performance.
//
// Check() runs a bench for a fixed duration of wall-clock time and
// reports the achieved simulation rate against the processor's nominal
// clock. It will optionally generate profiling information.
//
// RunProfiler() wraps an arbitrary function with profile generation. On
// its own it does not limit how long the function runs for, which makes
// it useful for profiling real sessions.
package performance
