package framecheck

import "testing"

func TestResultCacheRestore(t *testing.T) {
	cache := NewResultCache(newTestStore(t))

	if _, ok, err := cache.Restore("https://www.youtube.com/watch?v=a"); err != nil || ok {
		t.Fatalf("Empty cache restored something: ok=%v err=%v", ok, err)
	}

	if err := cache.Store("https://www.youtube.com/watch?v=a", "<strong>first</strong>"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := cache.Store("https://www.youtube.com/watch?v=b", "<strong>second</strong>"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	tests := []struct {
		name   string
		url    string
		wantOK bool
	}{
		{name: "Last stored URL", url: "https://www.youtube.com/watch?v=b", wantOK: true},
		{name: "Overwritten URL", url: "https://www.youtube.com/watch?v=a", wantOK: false},
		{name: "Trailing slash", url: "https://www.youtube.com/watch?v=b/", wantOK: false},
		{name: "Different case", url: "https://www.youtube.com/watch?v=B", wantOK: false},
		{name: "Extra parameter", url: "https://www.youtube.com/watch?v=b&t=10", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, ok, err := cache.Restore(tt.url)
			if err != nil {
				t.Fatalf("Restore failed: %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("Restore(%q) ok = %v, want %v", tt.url, ok, tt.wantOK)
			}
			if ok && html != "<strong>second</strong>" {
				t.Errorf("Restore returned %q", html)
			}
		})
	}
}
