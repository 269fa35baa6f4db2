package htmloutput

// htmlTemplate is the embedded HTML template for the receipt report
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Receipt Report - {{.RunUUID}}</title>
    <style>
        :root {
            --bg-primary: #0d1117;
            --bg-secondary: #161b22;
            --bg-tertiary: #21262d;
            --text-primary: #f0f6fc;
            --text-secondary: #8b949e;
            --border-color: #30363d;
            --critical: #f85149;
            --high: #db6d28;
            --medium: #d29922;
            --low: #3fb950;
            --info: #58a6ff;
        }

        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, sans-serif;
            background: var(--bg-primary);
            color: var(--text-primary);
            line-height: 1.6;
            padding: 20px;
        }

        .container {
            max-width: 1200px;
            margin: 0 auto;
        }

        header {
            text-align: center;
            padding: 40px 20px;
            background: linear-gradient(135deg, var(--bg-secondary) 0%, var(--bg-tertiary) 100%);
            border-radius: 16px;
            margin-bottom: 30px;
            border: 1px solid var(--border-color);
        }

        header h1 {
            font-size: 2.5em;
            margin-bottom: 10px;
            background: linear-gradient(90deg, #58a6ff, #3fb950);
            -webkit-background-clip: text;
            -webkit-text-fill-color: transparent;
            background-clip: text;
        }

        .meta {
            color: var(--text-secondary);
            font-size: 0.9em;
        }

        .summary-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(200px, 1fr));
            gap: 20px;
            margin-bottom: 30px;
        }

        .summary-card {
            background: var(--bg-secondary);
            border: 1px solid var(--border-color);
            border-radius: 12px;
            padding: 24px;
            text-align: center;
        }

        .summary-card.receipts { border-left: 4px solid var(--info); }
        .summary-card.failed { border-left: 4px solid var(--critical); }
        .summary-card.purchases { border-left: 4px solid var(--medium); }
        .summary-card.active { border-left: 4px solid var(--low); }

        .summary-card h3 {
            color: var(--text-secondary);
            font-size: 0.85em;
            text-transform: uppercase;
            letter-spacing: 1px;
            margin-bottom: 10px;
        }

        .summary-card .value {
            font-size: 2.5em;
            font-weight: 700;
        }

        .section {
            background: var(--bg-secondary);
            border: 1px solid var(--border-color);
            border-radius: 12px;
            margin-bottom: 20px;
            overflow: hidden;
        }

        .section-header {
            padding: 20px 24px;
            cursor: pointer;
            display: flex;
            justify-content: space-between;
            align-items: center;
            background: var(--bg-tertiary);
        }

        .section-header h2 {
            font-size: 1.2em;
            display: flex;
            align-items: center;
            gap: 12px;
        }

        .section-status {
            width: 12px;
            height: 12px;
            border-radius: 50%;
        }

        .section-status.critical { background: var(--critical); box-shadow: 0 0 10px var(--critical); }
        .section-status.warning { background: var(--medium); box-shadow: 0 0 10px var(--medium); }
        .section-status.good { background: var(--low); box-shadow: 0 0 10px var(--low); }

        .section-content {
            padding: 0 24px 24px;
        }

        .section.collapsed .section-content {
            display: none;
        }

        .section-description, .source {
            color: var(--text-secondary);
            margin: 12px 0;
            font-size: 0.95em;
        }

        .details {
            display: grid;
            grid-template-columns: max-content 1fr;
            gap: 4px 16px;
            margin-bottom: 16px;
            font-size: 0.9em;
        }

        .details dt { color: var(--text-secondary); }
        .details dd { font-family: 'SFMono-Regular', Consolas, 'Liberation Mono', monospace; word-break: break-all; }

        .purchases-table {
            width: 100%;
            border-collapse: collapse;
        }

        .purchases-table th {
            text-align: left;
            padding: 12px 16px;
            background: var(--bg-tertiary);
            color: var(--text-secondary);
            font-size: 0.85em;
            text-transform: uppercase;
            border-bottom: 1px solid var(--border-color);
        }

        .purchases-table td {
            padding: 12px 16px;
            border-bottom: 1px solid var(--border-color);
        }

        .status-badge {
            display: inline-block;
            padding: 4px 12px;
            border-radius: 20px;
            font-size: 0.75em;
            font-weight: 600;
            text-transform: uppercase;
        }

        .status-active { color: var(--low); border: 1px solid var(--low); }
        .status-expired { color: var(--medium); border: 1px solid var(--medium); }
        .status-cancelled { color: var(--critical); border: 1px solid var(--critical); }
        .status-purchased { color: var(--info); border: 1px solid var(--info); }

        .flag-badge {
            display: inline-block;
            padding: 2px 8px;
            margin: 2px 4px 2px 0;
            border-radius: 4px;
            font-size: 0.7em;
            background: rgba(88, 166, 255, 0.15);
            color: var(--info);
        }

        .error {
            color: var(--critical);
            font-family: 'SFMono-Regular', Consolas, 'Liberation Mono', monospace;
            padding: 16px 0;
        }

        .no-purchases {
            text-align: center;
            padding: 24px;
            color: var(--text-secondary);
        }

        footer {
            text-align: center;
            padding: 30px;
            color: var(--text-secondary);
            font-size: 0.85em;
        }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>🧾 Receipt Report</h1>
            <p class="meta">Run: <strong>{{.RunUUID}}</strong> | Generated: {{.GeneratedAt}}{{if .Version}} | Version: {{.Version}}{{end}}</p>
        </header>

        <div class="summary-grid">
            <div class="summary-card receipts">
                <h3>Receipts</h3>
                <div class="value">{{.Summary.Receipts}}</div>
            </div>
            <div class="summary-card failed">
                <h3>Failed</h3>
                <div class="value">{{.Summary.Failed}}</div>
            </div>
            <div class="summary-card purchases">
                <h3>Purchases</h3>
                <div class="value">{{.Summary.Purchases}}</div>
            </div>
            <div class="summary-card active">
                <h3>Active Subscriptions</h3>
                <div class="value">{{.Summary.ActiveSubscriptions}}</div>
            </div>
        </div>

        {{range .Sections}}
        <div class="section" id="{{.ID}}">
            <div class="section-header" onclick="toggleSection('{{.ID}}')">
                <h2>
                    <span class="section-status {{.Status}}"></span>
                    {{.Title}}
                </h2>
                <span>{{len .Purchases}} purchases</span>
            </div>
            <div class="section-content">
                <p class="source">Source: {{.Source}}</p>
                {{if .Error}}
                <div class="error">{{.Error}}</div>
                {{else}}
                {{if .Description}}<p class="section-description">{{.Description}}</p>{{end}}
                <dl class="details">
                    {{range .Details}}<dt>{{.Label}}</dt><dd>{{.Value}}</dd>{{end}}
                </dl>
                {{if .Purchases}}
                <table class="purchases-table">
                    <thead>
                        <tr>
                            <th>Status</th>
                            <th>Product</th>
                            <th>Type</th>
                            <th>Transaction</th>
                            <th>Purchased</th>
                            <th>Expires</th>
                            <th>Flags</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .Purchases}}
                        <tr>
                            <td><span class="status-badge {{statusClass .Status}}">{{.Status}}</span></td>
                            <td>{{.Product}}</td>
                            <td>{{.Type}}</td>
                            <td>{{.Transaction}}</td>
                            <td>{{.Purchased}}</td>
                            <td>{{.Expires}}</td>
                            <td>{{range .Flags}}<span class="flag-badge">{{.}}</span>{{end}}</td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
                {{else}}
                <div class="no-purchases">No in-app purchases</div>
                {{end}}
                {{end}}
            </div>
        </div>
        {{end}}

        <footer>
            <p>Generated by receipt-parser</p>
        </footer>
    </div>

    <script>
        function toggleSection(id) {
            document.getElementById(id).classList.toggle('collapsed');
        }
    </script>
</body>
</html>`
