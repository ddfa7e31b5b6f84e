// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package chardev wraps the LCD protocol driver in the lifecycle of
// an openable character device: register with the host, acquire the
// display pins, run the power-on sequence, serve open handles, then
// tear everything down in reverse order.
//
// Pin ownership is reference counted. The driver holds one reference
// from Start to Stop and each open handle holds another, so closing a
// handle never releases pins that other handles are still using.
package chardev
