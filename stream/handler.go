package stream

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/remocast/remocast/filesystem"
	"github.com/remocast/remocast/log"
)

// chunkSize is the read granularity of the response body. Small enough
// to keep memory flat, large enough for sequential disk throughput.
const chunkSize = 64 * 1024

// newHandler routes stream requests. The filename variant exists only
// for televisions that sniff the media type from the URL path.
func newHandler(registry *Registry) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /stream/{id}", func(w http.ResponseWriter, r *http.Request) {
		serveStream(w, r, registry, r.PathValue("id"))
	})
	mux.HandleFunc("GET /stream/{id}/{filename}", func(w http.ResponseWriter, r *http.Request) {
		serveStream(w, r, registry, r.PathValue("id"))
	})
	return mux
}

// serveStream delivers a registered file, honoring single byte ranges.
// Malformed or unsatisfiable Range headers degrade to a full response
// rather than an error, which is what televisions cope with best.
func serveStream(w http.ResponseWriter, r *http.Request, registry *Registry, id string) {
	path, ok := registry.Resolve(id).Get()
	if !ok {
		http.Error(w, "stream not found", http.StatusNotFound)
		return
	}

	file, err := filesystem.API().Open(path)
	if err != nil {
		log.Errorf("stream: open %s: %s", path, err)
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		log.Errorf("stream: stat %s: %s", path, err)
		http.Error(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	size := info.Size()

	w.Header().Set("Content-Type", contentType(path))
	w.Header().Set("Accept-Ranges", "bytes")

	start, end, ok := parseRange(r.Header.Get("Range"), size)
	if !ok {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		copyChunks(w, file, size)
		return
	}

	if _, err := file.Seek(start, io.SeekStart); err != nil {
		log.Errorf("stream: seek %s: %s", path, err)
		http.Error(w, "seek failed", http.StatusInternalServerError)
		return
	}

	length := end - start + 1
	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	w.WriteHeader(http.StatusPartialContent)
	copyChunks(w, file, length)
}

// copyChunks streams up to length bytes from the file to the client.
// Write errors just end the transfer; clients abort ranges constantly.
func copyChunks(w http.ResponseWriter, file io.Reader, length int64) {
	buffer := make([]byte, chunkSize)
	remaining := length

	for remaining > 0 {
		toRead := int64(len(buffer))
		if remaining < toRead {
			toRead = remaining
		}

		read, err := file.Read(buffer[:toRead])
		if read > 0 {
			remaining -= int64(read)
			if _, err := w.Write(buffer[:read]); err != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// parseRange interprets a single-range header of the forms
// "bytes=start-end", "bytes=start-" and "bytes=-suffix" against the
// given file size. It returns ok=false for anything it cannot satisfy,
// including multi-range requests.
func parseRange(header string, size int64) (start, end int64, ok bool) {
	value, found := strings.CutPrefix(header, "bytes=")
	if !found || strings.Contains(value, ",") {
		return 0, 0, false
	}

	first, rest, found := strings.Cut(value, "-")
	if !found || strings.Contains(rest, "-") {
		return 0, 0, false
	}

	if first == "" {
		// Suffix range: the last N bytes of the file.
		suffix, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || suffix <= 0 {
			return 0, 0, false
		}
		if suffix > size {
			suffix = size
		}
		return size - suffix, size - 1, size > 0
	}

	start, err := strconv.ParseInt(first, 10, 64)
	if err != nil {
		return 0, 0, false
	}

	if rest == "" {
		end = size - 1
	} else {
		end, err = strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return 0, 0, false
		}
	}

	if start > end || start >= size {
		return 0, 0, false
	}

	if end > size-1 {
		end = size - 1
	}

	return start, end, true
}
