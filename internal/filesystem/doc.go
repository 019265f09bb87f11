/*
Package filesystem provides filesystem operations that tolerate NFS stale file
handle errors.

Inventories usually point at network shares, and files on them can return
ESTALE (errno 116) transiently while the server revalidates handles. The
helpers here retry only that error with exponential backoff; every other error
is returned immediately.

	file, err := filesystem.OpenWithRetry(csvPath, filesystem.DefaultRetryConfig())
	if err != nil {
	    return err
	}
	defer file.Close()

	if !filesystem.Exists(duplicatePath) {
	    // skip the record
	}

Defaults: 3 retries, 50ms initial backoff, 500ms cap.
*/
package filesystem
