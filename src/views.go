package main

import (
	"fmt"
	"html/template"
	"io"
)

// The pages are deliberately self-contained: inline CSS and JS, no asset
// pipeline. The dashboard page talks WebSocket first and falls back to
// polling when the socket cannot be established.

type dashboardPageData struct {
	Title           string
	Loading         string
	AutoRefreshNote string
	RefreshSeconds  float64
	Msg             messageCatalog
}

type logsPageData struct {
	Title          string
	Name           string
	Tail           int
	MaxTail        int
	RefreshSeconds float64
	Msg            messageCatalog
}

type terminalPageData struct {
	Title   string
	Name    string
	Command string
	Msg     messageCatalog
}

var faviconDataURI = template.URL(`data:image/svg+xml,<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'><text y='0.9em' font-size='90'>🧩</text></svg>`)

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>{{.Title}}</title>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1"/>
  <link rel="icon" href="` + string(faviconDataURI) + `">
  <style>
    :root { --bg:#0d1117; --fg:#c9d1d9; --muted:#777; --line:#222; --ok:#2ecc71; --bad:#e74c3c; --link:#58a6ff; }
    * { box-sizing: border-box; }
    body { margin:0; font-family: Arial, sans-serif; background: var(--bg); color: var(--fg); }
    header { text-align:center; padding:22px 12px; font-size:26px; }
    .container { max-width: 820px; margin: 0 auto; padding: 0 12px 40px; }
    a { color: var(--link); text-decoration: none; }
    a:hover { text-decoration: underline; }
    .card { padding: 12px 16px; border-bottom: 1px solid var(--line);
            display:flex; align-items:center; gap:16px; }
    .name { font-weight: 600; }
    .grow { flex: 1 1 auto; min-width: 180px; }
    .meta { font-size: 12px; color: var(--muted); margin-top:4px; }
    .status { font-weight: bold; font-size: 14px; min-width: 26px; text-align:center; }
    .running { color: var(--ok); }
    .stopped { color: var(--bad); }
    .actions { display:flex; gap:8px; }
    .btn { border:1px solid var(--line); background:#11161d; color:var(--fg); padding:6px 8px; border-radius:8px; cursor:pointer; font-size:13px; }
    .btn:hover { filter: brightness(1.1); }
    .btn:disabled { opacity: .5; cursor: not-allowed; }
    .footer { text-align:center; margin-top:12px; font-size:12px; color:var(--muted); }
    #toast {
      position: fixed; right: 18px; bottom: 18px; background:#11161d; color:var(--fg);
      padding:10px 12px; border:1px solid var(--line); border-radius:10px; opacity:0;
      transform: translateY(10px); transition: opacity .2s ease, transform .2s ease;
      pointer-events:none; box-shadow: 0 8px 24px rgba(0,0,0,.35);
      max-width: 60vw; font-size: 14px;
    }
    #toast.show { opacity:1; transform: translateY(0); }
    .row { display:flex; align-items:center; gap:12px; width:100%; flex-wrap:wrap; }
    .link { min-width: 240px; overflow:hidden; text-overflow:ellipsis; white-space:nowrap; }
    .mini { display:flex; gap:6px; }
  </style>
</head>
<body>
  <header>🧩 {{.Title}}</header>
  <div id="content" class="container">{{.Loading}}</div>
  <div class="footer"><span id="mode"></span> {{.AutoRefreshNote}}</div>
  <div id="toast"></div>

  <script>
    const MSG = {
      noContainers: {{.Msg.Get "no_containers"}},
      noPorts: {{.Msg.Get "no_ports"}},
      live: {{.Msg.Get "live"}},
      reconnecting: {{.Msg.Get "reconnecting"}},
      actionSent: {{.Msg.Get "action_sent"}},
      actionFailed: {{.Msg.Get "action_failed"}},
    };
    const REFRESH_MS = {{.RefreshSeconds}} * 1000;

    function toast(msg) {
      const t = document.getElementById('toast');
      t.textContent = msg;
      t.classList.add('show');
      clearTimeout(window.__toastTimer);
      window.__toastTimer = setTimeout(()=> t.classList.remove('show'), 2000);
    }

    async function api(url, opts) {
      const res = await fetch(url, opts);
      if (!res.ok) throw new Error(await res.text());
      return res.json();
    }

    async function doAction(name, action) {
      try {
        await api('/api/v2/containers/' + encodeURIComponent(name) + '/' + action, {method:'POST'});
        toast('✅ ' + name + ': ' + action + ' ' + MSG.actionSent);
      } catch (e) {
        toast('❌ ' + name + ': ' + action + ' ' + MSG.actionFailed);
      }
    }

    function fmt(v, digits) {
      return (v === null || v === undefined) ? '-' : Number(v).toFixed(digits);
    }

    function linkHtmlFor(c) {
      const logs = '/logs/' + encodeURIComponent(c.name);
      const term = '/exec/' + encodeURIComponent(c.name);
      const mini = '<span class="mini">' +
        '<a class="btn" href="' + logs + '" target="_blank" title="logs">📜</a>' +
        '<a class="btn" href="' + term + '" target="_blank" title="terminal">💻</a>' +
        '</span>';
      if (!c.link) return '<span class="link" style="color:#888"><em>' + MSG.noPorts + '</em></span>' + mini;
      return '<a class="link" href="' + c.link + '" target="_blank">' + c.link + '</a>' + mini;
    }

    function render(containers) {
      const div = document.getElementById('content');
      if (!containers.length) {
        div.innerHTML = '<p style="text-align:center;">' + MSG.noContainers + '</p>';
        return;
      }
      div.innerHTML = containers.map(c => {
        const statusCls = c.status === 'running' ? 'running' : 'stopped';
        const icon = c.status === 'running' ? '🟢' : '🔴';
        return '<div class="card">' +
          '<div class="status ' + statusCls + '">' + icon + '</div>' +
          '<div class="grow">' +
            '<div class="name">' + c.name + '</div>' +
            '<div class="meta">CPU: ' + fmt(c.cpu, 1) + '% &nbsp;|&nbsp; Mem: ' + fmt(c.mem_mb, 0) + ' MB</div>' +
          '</div>' +
          '<div class="grow row">' + linkHtmlFor(c) + '</div>' +
          '<div class="actions">' +
            '<button class="btn" title="restart" onclick="doAction(\'' + c.name + '\',\'restart\')">🔄</button>' +
            '<button class="btn" title="start" onclick="doAction(\'' + c.name + '\',\'start\')">▶️</button>' +
            '<button class="btn" title="stop" onclick="doAction(\'' + c.name + '\',\'stop\')">⏹️</button>' +
          '</div>' +
        '</div>';
      }).join('');
    }

    function setMode(text) {
      document.getElementById('mode').textContent = '[' + text + ']';
    }

    async function poll() {
      try {
        render(await api('/api/v2/containers'));
      } catch (e) { /* transient; next cycle retries */ }
    }

    let pollTimer = null;
    function startPolling() {
      if (pollTimer) return;
      poll();
      pollTimer = setInterval(poll, REFRESH_MS);
    }
    function stopPolling() {
      if (pollTimer) { clearInterval(pollTimer); pollTimer = null; }
    }

    function connect() {
      const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
      const ws = new WebSocket(proto + location.host + '/api/v2/containers/stream');
      ws.onopen = () => { setMode(MSG.live); stopPolling(); };
      ws.onmessage = (ev) => {
        const data = JSON.parse(ev.data);
        if (data.type === 'containers') render(data.containers);
      };
      ws.onclose = () => {
        setMode(MSG.reconnecting);
        startPolling();
        setTimeout(connect, 3000);
      };
    }

    connect();
  </script>
</body>
</html>
`))

var logsTemplate = template.Must(template.New("logs").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8"/>
  <title>{{.Title}} · {{.Msg.Get "logs_title"}} · {{.Name}}</title>
  <link rel="icon" href="` + string(faviconDataURI) + `">
  <style>
    body { background:#0d1117; color:#c9d1d9; font-family: monospace; margin:0; padding:16px 24px; }
    h3 { margin-top: 4px; }
    pre { background:#0f1420; padding:12px; border:1px solid #333; border-radius:8px;
          white-space:pre-wrap; word-break:break-all; min-height:60vh; }
    a { color:#58a6ff; text-decoration:none; }
    a:hover { text-decoration:underline; }
    .bar { display:flex; gap:12px; align-items:center; font-size:13px; color:#999; }
    input { background:#11161d; border:1px solid #333; color:#fff; padding:4px 8px;
            border-radius:6px; width:80px; }
  </style>
</head>
<body>
  <h3>📜 {{.Title}} · {{.Msg.Get "logs_title"}} · {{.Name}}</h3>
  <div class="bar">
    <label>{{.Msg.Get "logs_tail_label"}}:
      <input id="tail" type="number" min="1" max="{{.MaxTail}}" value="{{.Tail}}"/>
    </label>
    <a href="/" target="_blank">{{.Msg.Get "back_to_dashboard"}}</a>
  </div>
  <pre id="logs"></pre>
  <script>
    const NAME = {{.Name}};
    async function refresh() {
      const tail = document.getElementById('tail').value || {{.Tail}};
      try {
        const res = await fetch('/logs_raw/' + encodeURIComponent(NAME) + '?tail=' + tail);
        document.getElementById('logs').textContent = await res.text();
      } catch (e) { /* transient; next cycle retries */ }
    }
    refresh();
    setInterval(refresh, {{.RefreshSeconds}} * 1000);
  </script>
</body>
</html>
`))

var terminalTemplate = template.Must(template.New("terminal").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8"/>
  <title>{{.Title}} · {{.Msg.Get "exec_title"}} · {{.Name}}</title>
  <link rel="icon" href="` + string(faviconDataURI) + `">
  <style>
    body { background:#0d1117; color:#c9d1d9; font-family: monospace; padding:24px; }
    pre { background:#0f1420; padding:12px; border:1px solid #333; border-radius:8px; }
    button { background:#11161d; border:1px solid #333; color:#fff; padding:6px 10px;
             border-radius:8px; cursor:pointer; }
    button:hover { filter: brightness(1.2); }
    a { color:#58a6ff; text-decoration:none; }
    a:hover { text-decoration:underline; }
    #toast { position:fixed; bottom:20px; right:20px; background:#11161d; padding:10px 14px;
             border-radius:8px; border:1px solid #333; opacity:0; transition:.3s; }
    #toast.show { opacity:1; }
  </style>
</head>
<body>
  <h3>💻 {{.Title}} · {{.Msg.Get "exec_title"}} · {{.Name}}</h3>
  <p>{{.Msg.Get "exec_instructions"}}</p>
  <pre id="cmd">{{.Command}}</pre>
  <button onclick="copyCmd()">📋 {{.Msg.Get "copy_command"}}</button>
  &nbsp;&nbsp; <a href="/" target="_blank">{{.Msg.Get "back_to_dashboard"}}</a>
  <div id="toast">{{.Msg.Get "copied"}}</div>
  <script>
    function copyCmd() {
      const text = document.getElementById('cmd').textContent;
      navigator.clipboard.writeText(text);
      const toast = document.getElementById('toast');
      toast.classList.add('show');
      setTimeout(()=>toast.classList.remove('show'),1500);
    }
  </script>
</body>
</html>
`))

func renderDashboardPage(w io.Writer, cfg Config, msg messageCatalog) error {
	secs := cfg.RefreshInterval.Seconds()
	return dashboardTemplate.Execute(w, dashboardPageData{
		Title:           cfg.AppTitle,
		Loading:         msg.Get("loading"),
		AutoRefreshNote: fmt.Sprintf(msg.Get("auto_refresh"), int(secs)),
		RefreshSeconds:  secs,
		Msg:             msg,
	})
}

func renderLogsPage(w io.Writer, cfg Config, msg messageCatalog, name string, tail int) error {
	return logsTemplate.Execute(w, logsPageData{
		Title:          cfg.AppTitle,
		Name:           name,
		Tail:           tail,
		MaxTail:        cfg.LogMaxTail,
		RefreshSeconds: cfg.LogRefreshInterval.Seconds(),
		Msg:            msg,
	})
}

func renderTerminalPage(w io.Writer, cfg Config, msg messageCatalog, name string) error {
	return terminalTemplate.Execute(w, terminalPageData{
		Title:   cfg.AppTitle,
		Name:    name,
		Command: buildExecCommand(name, cfg.WSLDistro, cfg.ExecShell),
		Msg:     msg,
	})
}
