package api

import (
	"net/http"
)

const calendarUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Advent Engine</title>
    <style>
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: monospace;
            background: #0f0f23;
            color: #ccc;
            height: 100vh;
            display: flex;
            flex-direction: column;
        }
        header {
            background: #10101a;
            padding: 12px 20px;
            border-bottom: 1px solid #333340;
            display: flex;
            justify-content: space-between;
            align-items: center;
        }
        header h1 { font-size: 16px; font-weight: normal; color: #00cc00; }
        #stars { color: #ffff66; }
        #status { padding: 4px 10px; border-radius: 4px; font-size: 12px; }
        #status.connected { background: #1b4332; color: #95d5b2; }
        #status.disconnected { background: #7f1d1d; color: #fca5a5; }
        #status.connecting { background: #78350f; color: #fcd34d; }
        #calendar {
            display: grid;
            grid-template-columns: repeat(13, 1fr);
            gap: 4px;
            padding: 10px 20px;
            border-bottom: 1px solid #333340;
        }
        .day {
            background: #10101a;
            border: 1px solid #333340;
            border-radius: 4px;
            padding: 6px 0;
            text-align: center;
            cursor: pointer;
            font-size: 12px;
        }
        .day.solver { color: #009900; }
        .day.active { border-color: #ffff66; }
        .day .s { color: #ffff66; display: block; font-size: 10px; min-height: 12px; }
        #events { flex: 1; overflow-y: auto; padding: 10px; }
        .event {
            padding: 6px 12px;
            margin-bottom: 4px;
            background: #10101a;
            border-left: 3px solid #333340;
            font-size: 13px;
            display: flex;
            gap: 12px;
        }
        .event.level-error { border-left-color: #dc2626; }
        .event.level-warn { border-left-color: #d97706; }
        .event.scope-answer { border-left-color: #ffff66; }
        .event.scope-puzzle { border-left-color: #7c3aed; }
        .ts { color: #6b7280; font-size: 11px; min-width: 90px; }
        .name { color: #60a5fa; min-width: 160px; }
        .fields { color: #9ca3af; }
        footer {
            background: #10101a;
            padding: 8px 20px;
            border-top: 1px solid #333340;
            font-size: 11px;
            color: #6b7280;
        }
    </style>
</head>
<body>
    <header>
        <h1>Advent Engine <span id="stars"></span></h1>
        <span id="status" class="disconnected">Disconnected</span>
    </header>
    <div id="calendar"></div>
    <div id="events"></div>
    <footer>
        <span id="count">0</span> events | <a href="#" onclick="select(0)">deselect</a> | WebSocket: /ws
    </footer>

    <script>
        const eventsDiv = document.getElementById('events');
        const statusEl = document.getElementById('status');
        const countEl = document.getElementById('count');
        const calendar = document.getElementById('calendar');
        let eventCount = 0;
        let ws = null;
        let reconnectTimer = null;

        for (let d = 1; d <= 25; d++) {
            const cell = document.createElement('div');
            cell.className = 'day';
            cell.id = 'day-' + d;
            cell.innerHTML = d + '<span class="s"></span>';
            cell.onclick = function() { select(d); };
            calendar.appendChild(cell);
        }

        function refresh() {
            fetch('/api/state').then(function(r) { return r.json(); }).then(function(st) {
                for (let d = 1; d <= 25; d++) {
                    const cell = document.getElementById('day-' + d);
                    cell.classList.toggle('solver', (st.solvers || []).indexOf(d) >= 0);
                    cell.classList.toggle('active', st.phase === 'active' && st.day === d);
                }
            });
            fetch('/api/progress').then(function(r) { return r.json(); }).then(function(p) {
                document.getElementById('stars').textContent = p.stars + '*';
                ((p.record || {}).days || []).forEach(function(d, i) {
                    const el = document.querySelector('#day-' + (i + 1) + ' .s');
                    const n = (d.puzzle1_completed ? 1 : 0) + (d.puzzle2_completed ? 1 : 0);
                    if (el) el.textContent = '*'.repeat(n);
                });
            });
        }

        function select(day) {
            fetch('/api/select', {
                method: 'POST',
                headers: { 'Content-Type': 'application/json' },
                body: JSON.stringify({ day: day })
            }).then(refresh);
            return false;
        }

        function renderEvent(e) {
            const div = document.createElement('div');
            div.className = 'event level-' + e.level + ' scope-' + e.event.split('.')[0];
            div.innerHTML =
                '<span class="ts">' + new Date(e.ts).toLocaleTimeString('en-US', { hour12: false }) + '</span>' +
                '<span class="name">' + e.event + '</span>' +
                '<span class="fields">' + (e.fields ? JSON.stringify(e.fields) : '') + '</span>';
            eventsDiv.appendChild(div);
            countEl.textContent = ++eventCount;
            eventsDiv.scrollTop = eventsDiv.scrollHeight;
            while (eventsDiv.children.length > 500) {
                eventsDiv.removeChild(eventsDiv.firstChild);
            }
            if (e.event.startsWith('puzzle.') || e.event === 'progress.updated') {
                refresh();
            }
        }

        function setStatus(status) {
            statusEl.className = status;
            statusEl.textContent = status.charAt(0).toUpperCase() + status.slice(1);
        }

        function connect() {
            if (ws && ws.readyState === WebSocket.OPEN) return;
            setStatus('connecting');
            const protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
            ws = new WebSocket(protocol + '//' + location.host + '/ws');
            ws.onopen = function() { setStatus('connected'); };
            ws.onmessage = function(msg) {
                try { renderEvent(JSON.parse(msg.data)); } catch (err) { console.error(err); }
            };
            ws.onclose = function() {
                setStatus('disconnected');
                if (!reconnectTimer) {
                    reconnectTimer = setTimeout(function() { reconnectTimer = null; connect(); }, 3000);
                }
            };
            ws.onerror = function() { ws.close(); };
        }

        refresh();
        connect();
    </script>
</body>
</html>`

// uiHandler serves the calendar page at the root and 404s elsewhere.
func (s *Server) uiHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(calendarUIHTML))
}
