// Package remote forwards build operations to a host-side builder over
// socket.io.
//
// Every operation is emitted as a "bndl:op" event carrying a request id and
// the JSON form of the operation. The host answers with a "bndl:result"
// event echoing the id, plus an "error" string when the operation failed.
package remote
