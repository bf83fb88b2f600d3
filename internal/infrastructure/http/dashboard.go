package httpserver

import "net/http"

// handleDashboard serves the single-page board. The page carries no
// server state; it bootstraps itself from /api/pairs and refreshes the
// metrics, series, and bank rows in place off the JSON API.
func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(dashboardHTML))
}

const dashboardHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <title>fxmon</title>
  <script src="https://cdn.jsdelivr.net/npm/echarts@5.5.0/dist/echarts.min.js"></script>
  <style>
    * { box-sizing: border-box; }
    body { margin: 0; font-family: "Segoe UI", Roboto, Helvetica, Arial, sans-serif; }
    body.dark { background: #101418; color: #e6e6e6; }
    body.light { background: #fafafa; color: #1a1a1a; }
    header { display: flex; align-items: baseline; gap: 16px; padding: 12px 20px; border-bottom: 1px solid #8883; }
    header h1 { font-size: 18px; margin: 0; }
    header .sub { font-size: 13px; opacity: 0.7; }
    nav { display: flex; gap: 8px; padding: 10px 20px 0; flex-wrap: wrap; }
    nav button { border: 1px solid #8884; background: transparent; color: inherit; padding: 4px 12px; border-radius: 4px; cursor: pointer; }
    nav button.active { border-color: #e6a23c; color: #e6a23c; }
    #metrics { display: flex; gap: 24px; align-items: baseline; padding: 12px 20px 0; }
    #rate { font-size: 40px; font-weight: 600; font-variant-numeric: tabular-nums; }
    #asof { font-size: 13px; opacity: 0.7; }
    .up { color: #ef232a; }
    .down { color: #14b143; }
    .flat { color: #8f8f8f; }
    #chart { width: 100%; height: 420px; padding: 8px 12px; }
    #board { padding: 0 20px 20px; }
    table { border-collapse: collapse; }
    th, td { text-align: right; padding: 4px 14px; border-bottom: 1px solid #8883; font-variant-numeric: tabular-nums; }
    th:first-child, td:first-child { text-align: left; }
    #health { display: flex; gap: 14px; margin-left: auto; font-size: 13px; }
    .src::before { content: "\25CF"; margin-right: 4px; }
    .src.ok::before { color: #4caf50; }
    .src.failed::before { color: #ef232a; }
    .src.pending::before { color: #8f8f8f; }
  </style>
</head>
<body class="dark">
  <header>
    <h1>fxmon</h1>
    <span class="sub">CNY exchange-rate board</span>
    <div id="health"></div>
  </header>
  <nav id="pairs"></nav>
  <nav id="windows"></nav>
  <div id="metrics">
    <span id="rate" class="flat">&ndash;</span>
    <span id="tick" class="flat"></span>
    <span>window <span id="wchange" class="flat"></span></span>
    <span id="asof"></span>
  </div>
  <div id="chart"></div>
  <div id="board">
    <table>
      <thead><tr><th>Bank</th><th>Spot sell</th><th>Cash sell</th><th>As of</th></tr></thead>
      <tbody id="bankrows"></tbody>
    </table>
  </div>
  <script>
    var POLL_MS = 2000;
    var state = { pair: "", window: "", pairs: [], windows: [] };
    var chart = null;

    var BANKS = { boc: "Bank of China", cmb: "China Merchants Bank" };

    function getJSON(url) {
      return fetch(url).then(function (res) {
        if (!res.ok) throw new Error(url + " -> " + res.status);
        return res.json();
      });
    }

    function fmtRate(x) { return x >= 1 ? x.toFixed(4) : x.toFixed(6); }
    function fmtPct(x) { return (x >= 0 ? "+" : "") + x.toFixed(2) + "%"; }
    function dirClass(x) { return x > 0 ? "up" : x < 0 ? "down" : "flat"; }
    function dirArrow(x) { return x > 0 ? "▲" : x < 0 ? "▼" : "–"; }
    function dirColor(x) { return x > 0 ? "#ef232a" : x < 0 ? "#14b143" : "#8f8f8f"; }

    function renderNav(el, values, active, onPick) {
      el.innerHTML = "";
      values.forEach(function (v) {
        var b = document.createElement("button");
        b.textContent = v;
        if (v === active) b.className = "active";
        b.onclick = function () { onPick(v); };
        el.appendChild(b);
      });
    }

    function renderPairs() {
      renderNav(document.getElementById("pairs"),
        state.pairs.map(function (p) { return p.pair; }),
        state.pair,
        function (v) { state.pair = v; renderPairs(); refresh(); });
    }

    function renderWindows() {
      renderNav(document.getElementById("windows"),
        state.windows,
        state.window,
        function (v) { state.window = v; renderWindows(); refresh(); });
    }

    function setText(id, text, cls) {
      var el = document.getElementById(id);
      el.textContent = text;
      if (cls !== undefined) el.className = cls;
    }

    function refresh() {
      var pair = encodeURIComponent(state.pair);

      getJSON("/api/quotes/latest?pair=" + pair).then(function (q) {
        setText("rate", fmtRate(q.rate), dirClass(q.tick_change));
        setText("tick", dirArrow(q.tick_change) + " " + fmtPct(q.tick_change), dirClass(q.tick_change));
        setText("wchange", fmtPct(q.window_change), dirClass(q.window_change));
        setText("asof", "as of " + new Date(q.timestamp).toLocaleTimeString());
      }).catch(function () {
        setText("asof", "waiting for data");
      });

      getJSON("/api/quotes/history?pair=" + pair + "&window=" + state.window).then(function (h) {
        var color = dirColor(h.window_change);
        chart.setOption({
          series: [{
            name: h.pair,
            data: h.points.map(function (p) { return [p.timestamp, p.rate]; }),
            lineStyle: { color: color },
            itemStyle: { color: color }
          }]
        });
      }).catch(function () {});

      getJSON("/api/banks?pair=" + pair).then(function (b) {
        var tb = document.getElementById("bankrows");
        tb.innerHTML = "";
        b.rows.forEach(function (row) {
          var tr = document.createElement("tr");
          [BANKS[row.source] || row.source, row.spot_sell, row.cash_sell,
           new Date(row.fetched_at).toLocaleTimeString()].forEach(function (cell) {
            var td = document.createElement("td");
            td.textContent = cell;
            tr.appendChild(td);
          });
          tb.appendChild(tr);
        });
      }).catch(function () {});

      getJSON("/healthz").then(function (h) {
        var el = document.getElementById("health");
        el.innerHTML = "";
        (h.sources || []).forEach(function (s) {
          var span = document.createElement("span");
          span.className = "src " + s.state;
          span.textContent = s.source;
          span.title = s.state + (s.last_error ? ": " + s.last_error : "");
          el.appendChild(span);
        });
      }).catch(function () {});
    }

    function boot() {
      getJSON("/api/pairs").then(function (meta) {
        state.pairs = meta.pairs;
        state.windows = meta.windows;
        state.pair = meta.pairs.length ? meta.pairs[0].pair : "";
        state.window = meta.window;
        document.body.className = meta.theme === "light" ? "light" : "dark";
        chart = echarts.init(document.getElementById("chart"), meta.theme === "light" ? null : "dark");
        chart.setOption({
          backgroundColor: "transparent",
          grid: { left: 70, right: 24, top: 24, bottom: 70 },
          xAxis: { type: "time" },
          yAxis: { type: "value", scale: true },
          tooltip: { trigger: "axis" },
          dataZoom: [{ type: "inside" }, { type: "slider", height: 20, bottom: 10 }],
          series: [{ type: "line", showSymbol: false, lineStyle: { width: 2 }, data: [] }]
        });
        window.addEventListener("resize", function () { chart.resize(); });
        renderPairs();
        renderWindows();
        refresh();
        setInterval(refresh, POLL_MS);
      });
    }

    window.onload = boot;
  </script>
</body>
</html>`
